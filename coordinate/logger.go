package coordinate

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[coordinate] ", log.LstdFlags)
