// Command coaster runs track simulations from JSON or YAML scene files and
// inspects their track graphs.
package main

func main() {
	Execute()
}
