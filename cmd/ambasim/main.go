// The ambasim command runs small self-contained bus emulation scenarios,
// mainly as executable documentation of the library.
package main

func main() {
	Execute()
}
