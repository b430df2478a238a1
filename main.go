package main

import "github.com/ngld/knossos/packages/uibuild/cmd"

func main() {
	cmd.Execute()
}
