package ragpod

// OrchestrationPrompt is the fixed system message that opens every turn's
// message history.
const OrchestrationPrompt = "You are a RAG agent. " +
	"Analyze the user's question and determine if it is a question about the document knowledge base or a general question. " +
	"If it is a general question, answer it based on your knowledge. " +
	"If it is a question about the knowledge base, use the `retrieve_context` tool to fetch relevant information. " +
	"If the knowledge base returns no relevant results, acknowledge this and provide general assistance."

// EmptyInputResponse is returned without consulting the model when a turn
// arrives with no user input.
const EmptyInputResponse = "Please provide a question."
