package di

import "os"

// logWriter returns the default destination for text/JSON terminal
// logging, shared by both containers before a configured log file
// swaps in a file-backed logger.
func logWriter() *os.File {
	return os.Stdout
}
