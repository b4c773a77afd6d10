package fsstore

// WriteBytesAtomic writes raw content (rendered images, scaffolded
// config files) with the same temp-then-rename guarantee as the JSON
// writer.
func WriteBytesAtomic(path string, content []byte, opts FileOptions) error {
	normalized, err := normalizePath(path)
	if err != nil {
		return err
	}
	return writeAtomic(normalized, content, opts)
}
