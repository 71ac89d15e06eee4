package main

import (
	"os"

	"github.com/zhengshuai-xiao/XferS/cmd"
	"github.com/zhengshuai-xiao/XferS/internal"
)

var logger = internal.GetLogger("xfers_main")

func main() {
	err := cmd.Main(os.Args)
	if err != nil {
		logger.Fatal(err)
	}
}
