package main

import "github.com/RyanBlaney/voice-detector/cmd"

func main() {
	cmd.Execute()
}
