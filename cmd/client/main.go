// Terminal client for the real-time channel, mostly used during
// development: it prints incoming events and lets you emit receipt
// updates by hand.
//
// Usage:
//
//	client -addr localhost:8080 -user <userId>
//
// Then type: receipt <messageId> delivered|seen
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"

	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/transport/ws"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	user := flag.String("user", "", "user id to connect as")
	flag.Parse()

	if *user == "" {
		log.Fatal("missing -user")
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "userId=" + url.QueryEscape(*user)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", u.String(), err)
	}
	defer conn.Close()

	color.Green.Printf("Connected as %s\n", *user)

	go readLoop(conn, *user)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 || fields[0] != "receipt" {
			color.Yellow.Println("usage: receipt <messageId> delivered|seen")
			continue
		}
		if err := sendReceipt(conn, fields[1], fields[2]); err != nil {
			color.Red.Printf("send failed: %v\n", err)
			return
		}
	}
}

func readLoop(conn *websocket.Conn, self string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			color.Red.Printf("connection closed: %v\n", err)
			os.Exit(1)
		}

		var envelope ws.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			continue
		}

		switch envelope.Event {
		case event.NameOnlineUsers:
			var online []string
			_ = json.Unmarshal(envelope.Payload, &online)
			renderOnline(online, self)
		case event.NameNewMessage:
			printMessage("incoming", envelope.Payload)
		case event.NameReceiptUpdated:
			printMessage("receipt", envelope.Payload)
		}
	}
}

func renderOnline(online []string, self string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Online user"})
	table.SetBorder(false)
	for _, id := range online {
		if id == self {
			id += " (you)"
		}
		table.Append([]string{id})
	}
	table.Render()
}

func printMessage(kind string, payload []byte) {
	var message domain.Message
	if err := json.Unmarshal(payload, &message); err != nil {
		return
	}
	line := fmt.Sprintf("[%s] %s -> %s : %s", kind, message.SenderID, message.ReceiverID, message.Text)
	if message.SeenAt != nil {
		line += " (seen)"
	} else if message.DeliveredAt != nil {
		line += " (delivered)"
	}
	color.Cyan.Println(line)
}

func sendReceipt(conn *websocket.Conn, messageID, status string) error {
	payload, err := json.Marshal(map[string]string{
		"messageId": messageID,
		"status":    status,
	})
	if err != nil {
		return err
	}
	frame, err := json.Marshal(ws.Envelope{Event: event.NameUpdateReceipt, Payload: payload})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}
