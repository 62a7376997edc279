// ABOUTME: No-op SIGPIPE guard on platforms without that signal (Windows, wasm)

//go:build windows || js

package acprpc

func ignoreBrokenPipe() {}
