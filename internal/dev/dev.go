package dev

import (
	"fmt"
	tea "github.com/charmbracelet/bubbletea"
	"log"
	"os"
)

var debugSet = os.Getenv("BW_DEBUG")
var debugPath = os.Getenv("BW_DEBUG_PATH")

// frequent is implemented by messages sent too often to be worth logging
type frequent interface {
	Frequent() bool
}

func Debug(msg string) {
	if debugPath == "" {
		debugPath = "bw.log"
	}
	if debugSet != "" {
		file, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()
		logger := log.New(file, "", log.Ldate|log.Lmicroseconds)
		logger.Printf("%q", msg)
	}
}

func DebugMsg(component string, msg tea.Msg) {
	if f, ok := msg.(frequent); ok && f.Frequent() {
		// skip logging messages that are too frequent
		return
	}
	Debug("--")
	Debug(fmt.Sprintf("Update %s: %T", component, msg))
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		Debug(fmt.Sprintf("  Key: '%v'", keyMsg.String()))
	}
}

func DebugUpdateMsg(component string, msg tea.Msg) {
	DebugMsg(component, msg)
}
