package query

import (
	"context"

	"github.com/goliatone/go-receivers/core"
)

type ReceiverReader interface {
	GetReceiver(ctx context.Context, receiverName string) (core.ReceiverMetadata, error)
	ListReceivers(ctx context.Context) ([]core.ReceiverMetadata, error)
}

type ConfigurationReader interface {
	ListConfigurations(ctx context.Context, receiverName string) ([]string, error)
	HasSecretKeys(ctx context.Context, receiverName string) (bool, error)
}

type GetReceiverQuery struct {
	reader ReceiverReader
}

func NewGetReceiverQuery(reader ReceiverReader) *GetReceiverQuery {
	return &GetReceiverQuery{reader: reader}
}

func (q *GetReceiverQuery) Query(ctx context.Context, msg GetReceiverMessage) (core.ReceiverMetadata, error) {
	if q == nil || q.reader == nil {
		return core.ReceiverMetadata{}, queryDependencyError("query: receiver reader is required")
	}
	return q.reader.GetReceiver(ctx, msg.ReceiverName)
}

type ListReceiversQuery struct {
	reader ReceiverReader
}

func NewListReceiversQuery(reader ReceiverReader) *ListReceiversQuery {
	return &ListReceiversQuery{reader: reader}
}

func (q *ListReceiversQuery) Query(ctx context.Context, _ ListReceiversMessage) ([]core.ReceiverMetadata, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: receiver reader is required")
	}
	return q.reader.ListReceivers(ctx)
}

type ListConfigurationsQuery struct {
	reader ConfigurationReader
}

func NewListConfigurationsQuery(reader ConfigurationReader) *ListConfigurationsQuery {
	return &ListConfigurationsQuery{reader: reader}
}

func (q *ListConfigurationsQuery) Query(ctx context.Context, msg ListConfigurationsMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: configuration reader is required")
	}
	return q.reader.ListConfigurations(ctx, msg.ReceiverName)
}

type HasSecretKeysQuery struct {
	reader ConfigurationReader
}

func NewHasSecretKeysQuery(reader ConfigurationReader) *HasSecretKeysQuery {
	return &HasSecretKeysQuery{reader: reader}
}

func (q *HasSecretKeysQuery) Query(ctx context.Context, msg HasSecretKeysMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: configuration reader is required")
	}
	return q.reader.HasSecretKeys(ctx, msg.ReceiverName)
}
