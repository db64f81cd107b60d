// Package mq 提供基于RabbitMQ的消息发布/订阅
//
// 换电核心在事务提交后发布业务事件(topic交换机battswap.events),
// 下游计费、通知等消费者按routing key订阅,与主流程异步解耦。
// 事件发布是尽力而为:发布失败只记日志,不影响已提交的换电结果。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/linhai/battswap/pkg/metrics"
)

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 创建消息发布者
// exchangeType取direct/topic/fanout,本项目统一用topic
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	// Durable交换机,重启不丢拓扑
	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log.Printf("✓ 消息发布者已创建: Exchange=%s, Type=%s", exchange, exchangeType)

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 发布消息
// 消息序列化为JSON,DeliveryMode=Persistent保证落盘
func (p *Publisher) Publish(routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	err = p.channel.PublishWithContext(
		context.Background(),
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	if metrics.MessagesPublishedTotal != nil {
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
			"exchange":    p.exchange,
			"routing_key": routingKey,
		})
	}

	return nil
}

// Close 关闭发布者
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer 创建消息消费者
// 声明与发布侧一致的交换机,按routingKeys绑定队列(支持通配符,如swap.*)
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	q, err := channel.QueueDeclare(
		queue,
		true,  // Durable
		false, // AutoDelete
		false, // Exclusive
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, routingKey := range routingKeys {
		err = channel.QueueBind(
			q.Name,
			routingKey,
			exchange,
			false, // NoWait
			nil,
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	log.Printf("✓ 消息消费者已创建: Queue=%s, RoutingKeys=%v", queue, routingKeys)

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
	}, nil
}

// Consume 开始消费消息
// handler返回nil则Ack,返回错误则Nack并重新入队
// 阻塞直到ctx取消或底层channel关闭
func (c *Consumer) Consume(ctx context.Context, handler func(body []byte) error) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // Consumer tag(自动生成)
		false, // AutoAck(手动确认)
		false, // Exclusive
		false, // NoLocal
		false, // NoWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("注册消费者失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("消息通道已关闭")
			}
			if err := handler(d.Body); err != nil {
				log.Printf("消息处理失败, 重新入队: %v", err)
				d.Nack(false, true) // requeue
				continue
			}
			d.Ack(false)
		}
	}
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
