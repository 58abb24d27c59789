package events

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type EventFilter interface {
	Filter(record events.DynamoDBEventRecord) bool
	Apply(ctx context.Context, record events.DynamoDBEventRecord) error
}

func recordImage(record events.DynamoDBEventRecord) map[string]events.DynamoDBAttributeValue {
	if record.Change.NewImage != nil {
		return record.Change.NewImage
	}
	return record.Change.OldImage
}

func str(image map[string]events.DynamoDBAttributeValue, name string) string {
	value, ok := image[name]
	if !ok || value.DataType() != events.DataTypeString {
		return ""
	}
	return value.String()
}

// resourceKey splits the "<owner>:<Resource>" partition key of a record.
func resourceKey(record events.DynamoDBEventRecord) (string, string) {
	pk, ok := record.Change.Keys["PK"]
	if !ok {
		pk, ok = recordImage(record)["PK"]
	}
	if !ok || pk.DataType() != events.DataTypeString {
		return "", ""
	}
	owner, resource, _ := strings.Cut(pk.String(), ":")
	return owner, resource
}

// Dispatcher fans stream records out to every handler that accepts them. A
// failing handler is logged and does not stop the batch.
type Dispatcher struct {
	Handlers []EventFilter
	Log      logrus.FieldLogger
}

func NewDispatcher(log logrus.FieldLogger, handlers ...EventFilter) *Dispatcher {
	return &Dispatcher{
		Handlers: handlers,
		Log:      log.WithField("module", "events"),
	}
}

// Dispatch returns the number of failed applications.
func (d *Dispatcher) Dispatch(ctx context.Context, records []events.DynamoDBEventRecord) int {
	failures := 0
	for _, record := range records {
		for _, handler := range d.Handlers {
			if !handler.Filter(record) {
				continue
			}
			if err := handler.Apply(ctx, record); err != nil {
				failures++
				d.Log.WithFields(logrus.Fields{
					"funcName": "Dispatch",
					"event":    record.EventName,
					"eventId":  record.EventID,
				}).Error(err.Error())
			}
		}
	}
	return failures
}
