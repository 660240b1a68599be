// Interactive terminal client. Connects to a running server, authenticates
// with the configured identity and turns stdin lines into chat messages.
//
// Commands:
//
//	/react <messageId> <emoji>   react to a message
//	/quit                        leave
package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-pulse/client"
	"chat-pulse/domain"
	"chat-pulse/protocol"
)

type Config struct {
	ServerURL string        `env:"SERVER_URL,default=ws://localhost:8080/ws"`
	UserID    domain.UserID `env:"USER_ID,required=true"`
	ChatID    domain.ChatID `env:"CHAT_ID,required=true"`
	LogLevel  string        `env:"LOG_LEVEL,default=warn"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	engine := client.NewEngine(config.ServerURL, client.NewDialer(), client.Options{}, logger)

	engine.OnStateChange(func(state client.State) {
		color.Gray.Printf("[%s]\n", state)
	})
	engine.OnError(func(err error) {
		color.Red.Printf("! %v\n", err)
	})
	engine.On(protocol.TypeNewMessage, func(envelope protocol.Envelope) {
		payload, err := protocol.PayloadAs[protocol.NewMessage](envelope)
		if err != nil {
			return
		}
		if payload.ChatID != config.ChatID {
			return
		}
		color.Cyan.Printf("user %d #%d> %s\n",
			payload.Message.UserID, payload.Message.ID, payload.Message.Text)
	})
	engine.On(protocol.TypeMessageReaction, func(envelope protocol.Envelope) {
		payload, err := protocol.PayloadAs[protocol.MessageReaction](envelope)
		if err != nil {
			return
		}
		color.Yellow.Printf("user %d reacted %s to #%d %v\n",
			payload.UserID, payload.Reaction, payload.MessageID, payload.UpdatedReactions)
	})
	engine.On(protocol.TypeUserStatus, func(envelope protocol.Envelope) {
		payload, err := protocol.PayloadAs[protocol.UserStatus](envelope)
		if err != nil {
			return
		}
		if payload.Status == domain.StatusOnline {
			color.Green.Printf("user %d is online\n", payload.UserID)
		} else {
			color.Gray.Printf("user %d went offline\n", payload.UserID)
		}
	})
	engine.On(protocol.TypeError, func(envelope protocol.Envelope) {
		payload, err := protocol.PayloadAs[protocol.Error](envelope)
		if err != nil {
			return
		}
		color.Red.Printf("server: %s\n", payload.Message)
	})

	engine.Connect(config.UserID)
	defer engine.Disconnect()

	fmt.Printf("Connected as user %d on chat %d. Type to talk, /quit to leave.\n",
		config.UserID, config.ChatID)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/react "):
			if err := react(engine, line); err != nil {
				color.Red.Printf("! %v\n", err)
			}
		default:
			err := engine.Send(protocol.New(protocol.TypeMessage, protocol.MessageIntent{
				ChatID: config.ChatID,
				Text:   line,
			}))
			if err != nil {
				color.Red.Printf("! %v\n", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdin read failed", slog.Any("error", err))
	}
}

func react(engine *client.Engine, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return fmt.Errorf("usage: /react <messageId> <emoji>")
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad message id %q", fields[1])
	}
	return engine.Send(protocol.New(protocol.TypeReaction, protocol.ReactionIntent{
		MessageID: domain.MessageID(id),
		Reaction:  fields[2],
	}))
}
