// Package main provides the entry point for the ffmpeg-api CLI.
package main

import "github.com/maauso/ffmpeg-api/internal/cli"

func main() {
	cli.Execute()
}
