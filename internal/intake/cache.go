package intake

// AnswerCache maps question ids to the answer recorded for them during this
// session. It is rebuilt from the server's history on login, starts empty on
// signup, and only grows or overwrites entries until an explicit retake
// clears it. The cache is owned by the Controller and is not safe for
// unsynchronized concurrent use on its own.
type AnswerCache struct {
	answers map[int64]string
}

// NewAnswerCache creates an empty cache.
func NewAnswerCache() *AnswerCache {
	return &AnswerCache{answers: make(map[int64]string)}
}

// Get returns the cached answer for a question id.
func (c *AnswerCache) Get(questionID int64) (string, bool) {
	answer, ok := c.answers[questionID]
	return answer, ok
}

// Set records an answer for a question id, overwriting any previous value.
func (c *AnswerCache) Set(questionID int64, answer string) {
	c.answers[questionID] = answer
}

// Size returns the number of cached answers.
func (c *AnswerCache) Size() int {
	return len(c.answers)
}

// Clear discards every cached answer.
func (c *AnswerCache) Clear() {
	c.answers = make(map[int64]string)
}

// Replace rebuilds the cache from a server-reported answer history.
func (c *AnswerCache) Replace(answers map[int64]string) {
	c.answers = make(map[int64]string, len(answers))
	for id, answer := range answers {
		c.answers[id] = answer
	}
}
