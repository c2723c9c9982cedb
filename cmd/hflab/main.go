package main

import "github.com/MeKo-Tech/hflab/internal/cmd"

func main() {
	cmd.Execute()
}
