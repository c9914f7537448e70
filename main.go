package main

import "github.com/KaramelBytes/listsum/cmd"

func main() {
	cmd.Execute()
}
