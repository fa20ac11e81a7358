package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	client, mock := redismock.NewClientMock()
	idx := NewIndex(client, nil, nil)

	doc := Document{ScheduleID: 7, Operator: "BlueLine", TotalSeats: 45}
	body, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectSMembers("schedule:route:1:3").SetVal([]string{"7"})
	mock.ExpectMGet("schedule:doc:7").SetVal([]interface{}{string(body)})

	docs, err := idx.Search(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint64(7), docs[0].ScheduleID)
	assert.Equal(t, "BlueLine", docs[0].Operator)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_SkipsEvictedDocuments(t *testing.T) {
	client, mock := redismock.NewClientMock()
	idx := NewIndex(client, nil, nil)

	doc := Document{ScheduleID: 8}
	body, err := json.Marshal(doc)
	require.NoError(t, err)

	// Schedule 7's document was evicted; its set entry is stale.
	mock.ExpectSMembers("schedule:route:1:3").SetVal([]string{"7", "8"})
	mock.ExpectMGet("schedule:doc:7", "schedule:doc:8").SetVal([]interface{}{nil, string(body)})

	docs, err := idx.Search(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint64(8), docs[0].ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_NoMatches(t *testing.T) {
	client, mock := redismock.NewClientMock()
	idx := NewIndex(client, nil, nil)

	mock.ExpectSMembers("schedule:route:5:6").SetVal([]string{})

	docs, err := idx.Search(context.Background(), 5, 6)
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_NilClientDegrades(t *testing.T) {
	idx := NewIndex(nil, nil, nil)

	docs, err := idx.Search(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Nil(t, docs)
}

func TestRouteKeyIsOrdered(t *testing.T) {
	assert.Equal(t, "schedule:route:1:3", routeKey(1, 3))
	assert.NotEqual(t, routeKey(1, 3), routeKey(3, 1))
}
