package main

import (
	"os"

	"github.com/aabid-khan7222/myschool-sub002/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
