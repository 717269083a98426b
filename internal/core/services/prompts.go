package services

// Prompt templates for the generation provider. Kept here rather than
// in the LLM adapters so every provider sees identical instructions.

// hypotheticalPrompt asks for a plausible passage answering the query.
// The passage is appended to the query before embedding so retrieval
// matches answer-shaped text, not question-shaped text.
const hypotheticalPrompt = `Write a short factual passage (3-4 sentences) that would plausibly appear in a document answering the question below. Write only the passage, no preamble.

Question: %s

Passage:`

// relevancePrompt asks for a numeric relevance judgement.
// The response must be a bare number so it can be parsed strictly;
// anything unparseable is treated as a scoring failure.
const relevancePrompt = `Rate how relevant the passage is to the question on a scale from 0 to 10, where 0 means unrelated and 10 means it directly answers the question. Respond with ONLY the number.

Question: %s

Passage:
%s

Rating:`

// answerPrompt grounds the final answer in the retrieved context.
const answerPrompt = `Answer the question using ONLY the context below. If the context does not contain the answer, say you don't have enough information. Answer in plain prose with no markup.

Context:
%s

Question: %s

Answer:`
