package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"runtime.link/api/xray"

	"godot.plugin/gast/internal/relay"
	"godot.plugin/gast/protocol/gast"
)

// gastecho [addr]
//
//	accepts websocket relays from GAST surfaces on ws://addr/gast and prints
//	every input event they forward, standing in for an external renderer.
func gastecho(addr string) error {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	http.HandleFunc("/gast", func(w http.ResponseWriter, r *http.Request) {
		sock, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, xray.New(err))
			return
		}
		defer sock.Close()
		fmt.Println("connected:", r.RemoteAddr)
		var rec gast.Recorder
		for {
			msg, err := relay.Recv(sock)
			if err != nil {
				fmt.Println("disconnected:", r.RemoteAddr)
				return
			}
			if err := msg.Deliver(&rec); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			for _, event := range rec.Events() {
				fmt.Println(event)
			}
		}
	})
	fmt.Println("listening on", "ws://"+addr+"/gast")
	if err := http.ListenAndServe(addr, nil); err != nil {
		return xray.New(err)
	}
	return nil
}

func main() {
	addr := "localhost:8017"
	switch len(os.Args) {
	case 1:
	case 2:
		addr = os.Args[1]
	default:
		panic("usage: gastecho [addr]")
	}
	if err := gastecho(addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
