// Package prompt builds the prompts for study plans, explanations, and
// quizzes. Builders compose a base prompt with retrieval context, user
// context, few-shot examples, and chain-of-thought scaffolding, and the
// adaptive manager adjusts complexity from quiz performance history.
package prompt
