package qa

import "fmt"

const answerSystemPrompt = `You are a helpful teaching assistant that answers questions about textbook content.
Answer only from the provided text. Provide clear, accurate answers based on the content provided. If the answer cannot be fully determined from the content, say so and give the best possible answer from what is available. Use markdown formatting for readability.`

const relevanceSystemPrompt = `You are a helpful assistant that determines if text content is relevant to answering a question. Respond with only 'yes' or 'no'.`

const fallbackSystemPrompt = `You are a helpful teaching assistant. The user has asked a question about content that isn't available in the provided text. Explain this politely and suggest how they might rephrase their question.`

func answerPrompt(question, content string) string {
	return fmt.Sprintf("Using the following textbook content, please answer this question: %s\n\nContent: %s", question, content)
}

func relevancePrompt(question, chunk string) string {
	return fmt.Sprintf("Question: %s\n\nIs the following content relevant to answering this question?\n\nContent: %s", question, chunk)
}

func chatSystemPrompt(contextDescription, contextText string) string {
	return fmt.Sprintf("%s\n\nThe reader is currently looking at %s of the document:\n\n%s", answerSystemPrompt, contextDescription, contextText)
}
