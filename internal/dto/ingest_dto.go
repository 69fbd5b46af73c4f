package dto

// PublishCorpusRowMessage is one dataset row queued for embedding
type PublishCorpusRowMessage struct {
	Corpus string            `json:"corpus"`
	RowKey string            `json:"row_key"`
	Fields map[string]string `json:"fields"`
}
