package fallback

import "cosmic/model"

var pools = map[model.ContextTag][]string{
	model.ContextCosmic: {
		"Fascinating question about the cosmos! While I don't have access to real-time AI processing, I can tell you that space exploration continues to reveal amazing discoveries.",
		"The universe is vast and full of mysteries. Your question touches on important aspects of cosmic understanding.",
		"Space technology and cosmic phenomena are incredibly complex topics. Thank you for your interest in exploring the universe!",
	},
	model.ContextAerospace: {
		"That's an interesting aerospace engineering question! Modern aircraft and spacecraft design involves complex engineering principles.",
		"Aerospace technology continues to advance rapidly, with new innovations in propulsion and materials science.",
		"Flight dynamics and space systems require careful consideration of many engineering factors.",
	},
	model.ContextAI: {
		"Great question about artificial intelligence! Machine learning systems learn patterns from data rather than following hand-written rules.",
		"AI is evolving quickly, from neural networks to large language models. Careful evaluation is key to using them well.",
		"Building reliable AI systems means balancing model capability, data quality, and responsible deployment.",
	},
	model.ContextTechnical: {
		"That's a solid technical question! Breaking the problem into smaller components usually reveals the best approach.",
		"Engineering problems like this often come down to trade-offs between performance, cost, and reliability.",
		"Good technical solutions start with clear requirements. Let's work through the details step by step.",
	},
	model.ContextGeneral: {
		"Thank you for your question! I'm processing your request and working to provide helpful information.",
		"That's an interesting topic to explore. Let me help you understand this better.",
		"I appreciate your curiosity and am here to assist with your questions.",
	},
}

// Pool returns the candidate replies for tag, or the general pool for an
// unknown tag. The returned slice must not be modified.
func Pool(tag model.ContextTag) []string {
	if p, ok := pools[tag]; ok {
		return p
	}
	return pools[model.ContextGeneral]
}
