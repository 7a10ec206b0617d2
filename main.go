/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/kmmy-shannel/ecotrackai-sub001/cmd"

func main() {
	cmd.Execute()
}
