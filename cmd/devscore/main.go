// Command devscore runs a DEVS simulation project described by a YAML
// descriptor, following the Driver contract: Init once, then Step
// until NextTime is infinite, then Finish.
package main

func main() {
	Execute()
}
