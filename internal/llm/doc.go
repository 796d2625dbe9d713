// Package llm wraps the hosted chat models used to write SQL and to
// summarize query results. Azure OpenAI and OpenAI go through openai-go,
// Anthropic through anthropic-sdk-go. Every client exposes the same
// single-turn Complete call.
package llm
