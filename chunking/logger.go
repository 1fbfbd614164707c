package chunking

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[chunking] ", log.LstdFlags)
