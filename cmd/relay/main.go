package main

import "github.com/relaywarp/relaywarp/cmd/relaycmd"

func main() {
	relaycmd.Execute()
}
