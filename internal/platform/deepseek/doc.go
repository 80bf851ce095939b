// Package deepseek implements the interpretation.Interpreter boundary
// against the DeepSeek chat-completions API, which speaks the OpenAI wire
// format. Responses are normalized into the structured reading result here,
// at the boundary, so no other layer re-parses upstream text.
package deepseek
