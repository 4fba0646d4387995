package mdh

import "bytes"

// StripFrontMatter splits a ---, +++ or ;;;-delimited front matter block
// off the start of src, returning the metadata body (without delimiters)
// and the remaining Markdown. Inputs without front matter come back
// unchanged. Parse never strips implicitly; callers that want front
// matter removed do it before parsing so source indices refer to what was
// actually parsed.
func StripFrontMatter(src []byte) (meta, body []byte) {
	openLine, next, ok := frontMatterLine(src, 0)
	if !ok {
		return nil, src
	}
	delim, isFrontMatter := frontMatterDelimiter(openLine)
	if !isFrontMatter {
		return nil, src
	}
	second, metaStart, ok := frontMatterLine(src, next)
	if !ok || !frontMatterMetadataLikely(second) {
		return nil, src
	}
	for idx := metaStart; idx <= len(src); {
		line, lineEnd, ok := frontMatterLine(src, idx)
		if !ok {
			break
		}
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			return src[next:idx], src[lineEnd:]
		}
		if lineEnd == idx {
			break
		}
		idx = lineEnd
	}
	return nil, src
}

func frontMatterLine(src []byte, start int) ([]byte, int, bool) {
	if start >= len(src) {
		return nil, start, false
	}
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src), true
	}
	return trimCR(src[start : start+i]), start + i + 1, true
}

func frontMatterDelimiter(line []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(trimBOM(line))
	switch {
	case bytes.Equal(trimmed, []byte("---")):
		return []byte("---"), true
	case bytes.Equal(trimmed, []byte("+++")):
		return []byte("+++"), true
	case bytes.Equal(trimmed, []byte(";;;")):
		return []byte(";;;"), true
	default:
		return nil, false
	}
}

func frontMatterMetadataLikely(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
		return true
	}
	return bytes.Contains(trimmed, []byte(":")) || bytes.Contains(trimmed, []byte("="))
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
