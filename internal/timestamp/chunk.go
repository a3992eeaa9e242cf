package timestamp

import "strings"

// DefaultChunkSize is the number of consecutive words grouped into one
// display chunk.
const DefaultChunkSize = 5

// Chunk is a fixed-size run of consecutive word timestamps shown together.
// Start and end are taken from the first and last word of the run.
type Chunk struct {
	Text  string  `json:"chunk"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ChunkWords groups word timestamps into chunks of size words each. The final
// chunk may be shorter. A size below 1 falls back to DefaultChunkSize.
func ChunkWords(words []WordTimestamp, size int) []Chunk {
	if size < 1 {
		size = DefaultChunkSize
	}
	if len(words) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		run := words[i:end]

		texts := make([]string, len(run))
		for j, w := range run {
			texts[j] = w.Word
		}

		chunks = append(chunks, Chunk{
			Text:  strings.Join(texts, " "),
			Start: run[0].Start,
			End:   run[len(run)-1].End,
		})
	}
	return chunks
}
