package gemini

// promptData carries the fields the prompt template interpolates.
type promptData struct {
	ContentType  string
	Topic        string
	Instructions string
}

// responseSchema is the JSON document the model is instructed to return.
type responseSchema struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
