package main

import "github.com/crumble-bakery/signup-service/cmd"

func main() {
	cmd.Execute()
}
