package logging

import (
	"log"
	"time"
)

// LogRequest logs an outbound request to an upstream service.
func LogRequest(component, method, url string, params map[string]interface{}) {
	if len(params) > 0 {
		log.Printf("[%s] %s %s params=%v", component, method, url, params)
	} else {
		log.Printf("[%s] %s %s", component, method, url)
	}
}

// LogResponse logs an upstream response.
func LogResponse(component string, statusCode int, duration time.Duration, resultCount int) {
	log.Printf("[%s] response status=%d duration=%dms results=%d",
		component, statusCode, duration.Milliseconds(), resultCount)
}

// LogError logs an error from an operation.
func LogError(component, operation string, err error) {
	log.Printf("[%s] %s error: %v", component, operation, err)
}

// LogWarn logs a condition that is handled but worth looking at.
func LogWarn(component, format string, args ...interface{}) {
	log.Printf("[%s] WARNING: "+format, append([]interface{}{component}, args...)...)
}

// LogRetry logs a retry about to be scheduled.
func LogRetry(component string, attempt int, delay time.Duration, err error) {
	log.Printf("[%s] attempt=%d failed, retrying in %dms: %v",
		component, attempt, delay.Milliseconds(), err)
}

// LogCache logs a cache decision for a key.
func LogCache(component, key string, hit bool) {
	if hit {
		log.Printf("[%s] cache hit key=%s", component, key)
	} else {
		log.Printf("[%s] cache miss key=%s", component, key)
	}
}
