package main

func main() {
	setupLogging()
	Execute()
}
