// Command antennademo serves a small Inertia app backed by antenna.
package main

func main() {
	Execute()
}
