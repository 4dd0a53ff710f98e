package generation

import "fmt"

// BuildPrompt assembles the user prompt from the question and the retrieved
// context block.
func BuildPrompt(question, contextBlock string) string {
	return fmt.Sprintf(`Based on the following context, answer the question. If the context doesn't contain enough information to answer the question, say so.

Context:
%s

Question: %s

Answer:`, contextBlock, question)
}
