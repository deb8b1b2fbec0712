package main

import (
	"github.com/privacybydesign/rsarng/cmd"
)

func main() {
	cmd.Execute()
}
