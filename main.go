package main

import "github.com/iksnae/merchant-support/cmd"

func main() {
	cmd.Execute()
}
