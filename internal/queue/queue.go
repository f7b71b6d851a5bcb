package queue

import (
	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DispatchQueue carries ids of campaigns that are due to be sent.
const DispatchQueue = "campaign_dispatch"

type dispatchJob struct {
	CampaignID int `json:"campaign_id"`
}

// Publisher hands campaigns off to the dispatch worker over RabbitMQ.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(DispatchQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) PublishCampaign(campaignID int) error {
	body, err := json.Marshal(dispatchJob{CampaignID: campaignID})
	if err != nil {
		return err
	}
	return p.ch.Publish("", DispatchQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *Publisher) Close() {
	p.ch.Close()
	p.conn.Close()
}

// Consume blocks, feeding each queued campaign id to handler one at a time.
// Every delivery is acked: the dispatch claim makes redelivery of an already
// handled campaign a no-op, so requeueing buys nothing.
func Consume(url string, handler func(campaignID int) error, log *zap.Logger) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(DispatchQueue, true, false, false, false, nil); err != nil {
		return err
	}

	// One campaign in flight at a time; dispatch is strictly serial.
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	msgs, err := ch.Consume(DispatchQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for d := range msgs {
		handleDelivery(d.Body, handler, log)
		d.Ack(false)
	}

	return nil
}

// handleDelivery decodes one queued job and runs it. A malformed payload is
// dropped; a handler error is logged, never propagated, so one bad campaign
// cannot stall the consumer.
func handleDelivery(body []byte, handler func(campaignID int) error, log *zap.Logger) {
	var job dispatchJob
	if err := json.Unmarshal(body, &job); err != nil {
		log.Warn("invalid dispatch job", zap.Error(err))
		return
	}

	if err := handler(job.CampaignID); err != nil {
		log.Warn("dispatch job failed",
			zap.Int("campaign_id", job.CampaignID), zap.Error(err))
	}
}
