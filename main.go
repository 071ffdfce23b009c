package main

import "github.com/KaramelBytes/visitpivot/cmd"

func main() {
	cmd.Execute()
}
