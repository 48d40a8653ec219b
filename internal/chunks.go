package internal

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const chunkKeyPrefix = "chunk:"

// Chunk is one stored update of a stream
type Chunk struct {
	Stream string
	Seq    int
	Body   string
}

// ParseChunkKey splits a "chunk:<stream>:<seq>" key. The stream name may
// itself contain colons; the sequence number is everything after the last one.
func ParseChunkKey(key string) (string, int, error) {
	if !strings.HasPrefix(key, chunkKeyPrefix) {
		return "", 0, &ParseError{Source: "chunkKey", Key: key, Err: fmt.Errorf("missing %q prefix", chunkKeyPrefix)}
	}
	rest := key[len(chunkKeyPrefix):]

	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", 0, &ParseError{Source: "chunkKey", Key: key, Err: fmt.Errorf("expected chunk:<stream>:<seq>")}
	}

	seq, err := strconv.Atoi(rest[i+1:])
	if err != nil || seq < 0 {
		return "", 0, &ParseError{Source: "chunkKey", Key: key, Err: fmt.Errorf("invalid sequence %q", rest[i+1:])}
	}
	return rest[:i], seq, nil
}

// LoadChunks reads every stored chunk and groups them by stream, each
// stream ordered by sequence number. Keys that do not parse are skipped.
func LoadChunks(db *sql.DB) (map[string][]Chunk, error) {
	pairs, err := QueryChunkKV(db, chunkKeyPrefix+"%")
	if err != nil {
		return nil, err
	}

	streams := make(map[string][]Chunk)
	for _, pair := range pairs {
		stream, seq, err := ParseChunkKey(pair.Key)
		if err != nil {
			LogWarn("Skipping chunk: %v", err)
			continue
		}
		streams[stream] = append(streams[stream], Chunk{Stream: stream, Seq: seq, Body: pair.Value})
	}

	for _, chunks := range streams {
		sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Seq < chunks[j].Seq })
	}

	LogDebug("Loaded %d chunks in %d streams", len(pairs), len(streams))
	return streams, nil
}

// StreamNames returns the stream names of a LoadChunks result, sorted
func StreamNames(streams map[string][]Chunk) []string {
	names := make([]string, 0, len(streams))
	for name := range streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
