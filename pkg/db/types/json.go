package types

// JSONMap is an open string-keyed attribute bag (e.g. variant attributes such
// as color/size). The core never branches on individual keys.
type JSONMap map[string]string

// Document is an opaque JSON object persisted as-is (e.g. shipping addresses).
type Document map[string]any
