package logs

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

var logger = log.New(os.Stdout, "", 0)

// LogJSON écrit une ligne de log JSON structurée sur stdout
func LogJSON(level string, message string, fields map[string]interface{}) {
	logEntry := map[string]interface{}{
		"severity": level, // "DEBUG", "INFO", "WARN", "ERROR" & "FATAL"
		"message":  message,
		"service":  "frum-toronto-api",
		"time":     time.Now().Format(time.RFC3339),
	}

	for k, v := range fields {
		logEntry[k] = v
	}

	jsonLog, err := json.Marshal(logEntry)
	if err != nil {
		log.Printf("ERROR: unable to marshal log entry: %v", err)
		return
	}

	logger.Println(string(jsonLog))
}
