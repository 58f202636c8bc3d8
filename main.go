package main

import (
	"github.com/joho/godotenv"

	"github.com/gluwa/ethtxquery/cmd"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
