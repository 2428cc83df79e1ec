package core

// DocumentExtractor turns an uploaded file into plain text.
type DocumentExtractor interface {
	// Supports reports whether the file name carries a suffix the extractor handles.
	Supports(name string) bool
	// Extract returns the text of the file, dispatching on the name's suffix.
	Extract(name string, data []byte) (string, error)
}

// TextCache remembers extracted text by content fingerprint.
type TextCache interface {
	Get(key string) (string, bool)
	Put(key, text string)
	// GetOrLoad returns the cached text or stores the result of load. hit is
	// false whenever load ran for this call or a concurrent one.
	GetOrLoad(key string, load func() (string, error)) (text string, hit bool, err error)
}
