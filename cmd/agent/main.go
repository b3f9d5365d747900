package main

import "github.com/relaywarp/relaywarp/cmd/agentcmd"

func main() {
	agentcmd.Execute()
}
