package provider

import "cosmic/model"

var systemPrompts = map[model.ContextTag]string{
	model.ContextCosmic:    "You are an AI assistant for the AGI Cosmic platform, specializing in aerospace technology, space exploration, and cosmic phenomena. Provide helpful, accurate, and engaging responses about space, technology, and related topics.",
	model.ContextAerospace: "You are an aerospace engineering expert. Provide technical guidance on aircraft design, propulsion systems, aerodynamics, and space technology.",
	model.ContextAI:        "You are an AI and machine learning expert. Help with AI concepts, implementation, and best practices in artificial intelligence.",
	model.ContextTechnical: "You are a technical expert. Provide detailed technical explanations and solutions for engineering and technology problems.",
	model.ContextGeneral:   "You are a helpful AI assistant. Provide accurate and helpful responses to user questions.",
}

// SystemPrompt returns the system instruction for tag. Unknown tags get the
// cosmic prompt.
func SystemPrompt(tag model.ContextTag) string {
	if p, ok := systemPrompts[tag]; ok {
		return p
	}
	return systemPrompts[model.DefaultContext]
}
