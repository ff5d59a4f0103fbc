package weather

import "github.com/tphakala/irrigo/internal/logger"

func getLogger() logger.Logger {
	return logger.Global().Module("weather")
}
