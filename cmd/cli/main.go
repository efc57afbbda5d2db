package main

import "podcasthub/cmd/cli/command"

func main() {
	command.Execute()
}
