package client

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

// decodeFileList decodes a list response body. Anything that decodes but is
// not an array becomes an empty list; non-string entries are skipped.
func decodeFileList(contentType string, body []byte) ([]string, error) {
	var v any

	if isMsgpack(contentType) {
		if err := msgpack.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decoding msgpack: %w", err)
		}
	} else {
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	}

	items, ok := v.([]any)
	if !ok {
		return []string{}, nil
	}

	files := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item.(string); ok {
			files = append(files, name)
		}
	}
	return files, nil
}

func isMsgpack(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch strings.ToLower(mediaType) {
	case contentTypeMsgpack, "application/x-msgpack", "application/vnd.msgpack":
		return true
	}
	return false
}
