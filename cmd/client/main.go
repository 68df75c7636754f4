package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dm-relay/domain"
	"dm-relay/ws"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL   string `envconfig:"RELAY_SERVER_URL" default:"http://localhost:8080"`
	Username    string `envconfig:"RELAY_USERNAME" required:"true"`
	Password    string `envconfig:"RELAY_PASSWORD" required:"true"`
	DisplayName string `envconfig:"RELAY_DISPLAY_NAME"`
	Register    bool   `envconfig:"RELAY_REGISTER" default:"false"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the connection lifecycle: obtain a token, open the
// socket, then split into a delivery printer and a command prompt.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := obtainToken(config)
	if err != nil {
		return exitRuntime, err
	}

	socketURL := strings.Replace(config.ServerURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, socketURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", socketURL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	color.Green.Printf(">>> Connected to %s as %s (Ctrl+C to quit)\n", config.ServerURL, config.Username)
	color.Gray.Println("Commands: /send <user_id> <text> | /join <user_id> | /history <user_id> [limit] | /quit")

	// Incoming frames print concurrently with the prompt.
	go printLoop(ctx, conn)

	return promptLoop(ctx, conn)
}

// obtainToken registers or logs in depending on configuration.
func obtainToken(config Config) (string, error) {
	path := "/login"
	payload := map[string]string{
		"username": config.Username,
		"password": config.Password,
	}
	if config.Register {
		path = "/register"
		payload["display_name"] = config.DisplayName
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	response, err := http.Post(config.ServerURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not reach %s: %w", config.ServerURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return "", fmt.Errorf("%s rejected: %s", path, response.Status)
	}

	var reply struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(response.Body).Decode(&reply); err != nil {
		return "", err
	}
	return reply.Token, nil
}

func printLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame ws.ServerFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() == nil {
				color.Red.Printf("Connection lost: %v\n", err)
			}
			return
		}
		printFrame(frame)
	}
}

func printFrame(frame ws.ServerFrame) {
	switch frame.Type {
	case ws.TypeSent:
		color.Gray.Printf("[%s] delivered to %s: %s\n",
			frame.Message.CreatedAt.Local().Format(time.TimeOnly),
			frame.Message.ToDisplayName, frame.Message.Body)
	case ws.TypeReceived:
		color.Cyan.Printf("[%s] %s: %s\n",
			frame.Message.CreatedAt.Local().Format(time.TimeOnly),
			frame.Message.FromDisplayName, frame.Message.Body)
	case ws.TypeJoined:
		color.Green.Printf("Joined %s with %s (user %d)\n",
			frame.Conversation, frame.Profile.DisplayName, frame.Profile.ID)
	case ws.TypeHistory:
		printHistory(frame.Messages)
	case ws.TypeError:
		color.Red.Printf("Error [%s]: %s\n", frame.Code, frame.Detail)
	}
}

func printHistory(views []domain.MessageView) {
	if len(views) == 0 {
		color.Gray.Println("No messages yet")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "From", "Message"})
	for _, view := range views {
		table.Append([]string{
			view.CreatedAt.Local().Format(time.TimeOnly),
			view.FromDisplayName,
			view.Body,
		})
	}
	table.Render()
}

func promptLoop(ctx context.Context, conn *websocket.Conn) (int, error) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return exitOK, nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return exitOK, nil
		}

		frame, err := parseCommand(line)
		if err != nil {
			color.Yellow.Println(err)
			continue
		}
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("write failed: %w", err)
		}
	}
	return exitOK, scanner.Err()
}

func parseCommand(line string) (ws.ClientFrame, error) {
	fields := strings.Fields(line)
	usage := fmt.Errorf("usage: /send <user_id> <text> | /join <user_id> | /history <user_id> [limit]")

	if len(fields) < 2 {
		return ws.ClientFrame{}, usage
	}
	target, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return ws.ClientFrame{}, usage
	}

	switch fields[0] {
	case "/send":
		if len(fields) < 3 {
			return ws.ClientFrame{}, usage
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, fields[0]+" "+fields[1]))
		return ws.ClientFrame{Type: ws.TypeSend, ToUserID: domain.UserID(target), Body: body}, nil
	case "/join":
		return ws.ClientFrame{Type: ws.TypeJoin, OtherUserID: domain.UserID(target)}, nil
	case "/history":
		limit := 0
		if len(fields) > 2 {
			if limit, err = strconv.Atoi(fields[2]); err != nil {
				return ws.ClientFrame{}, usage
			}
		}
		return ws.ClientFrame{Type: ws.TypeHistory, OtherUserID: domain.UserID(target), Limit: limit}, nil
	default:
		return ws.ClientFrame{}, usage
	}
}
