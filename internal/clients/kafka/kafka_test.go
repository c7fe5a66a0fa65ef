package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_OnRequestExport_ShouldPublishJSONRequest(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	sp := mocks.NewSyncProducer(t, nil)
	var sent ExportRequest
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &sent)
	})

	p := newProducer(sp, "exports")
	p.now = func() time.Time { return at }

	id, err := p.RequestExport(context.Background(), 42)

	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, sent.RequestID)
	assert.Equal(t, int64(42), sent.UserID)
	assert.Equal(t, at, sent.RequestedAt)
	require.NoError(t, sp.Close())
}

func Test_OnBrokerFailure_ShouldReturnError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	_, err := newProducer(sp, "exports").RequestExport(context.Background(), 1)

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, sp.Close())
}

type handlerMock struct {
	mock.Mock
}

func (m *handlerMock) HandleExportRequest(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func Test_OnMessage_ShouldHandleExportForUser(t *testing.T) {
	h := &handlerMock{}
	h.On("HandleExportRequest", mock.Anything, int64(42)).Return(nil).Once()
	c := &Consumer{topic: "exports", handler: h}

	value, err := json.Marshal(ExportRequest{RequestID: "r-1", UserID: 42})
	require.NoError(t, err)
	c.processMessage(context.Background(), &sarama.ConsumerMessage{Key: []byte("42"), Value: value})

	h.AssertExpectations(t)
}

func Test_OnBrokenMessage_ShouldSkipIt(t *testing.T) {
	h := &handlerMock{}
	c := &Consumer{topic: "exports", handler: h}

	c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})

	h.AssertNotCalled(t, "HandleExportRequest", mock.Anything, mock.Anything)
}

func Test_OnHandlerFailure_ShouldNotPanic(t *testing.T) {
	h := &handlerMock{}
	h.On("HandleExportRequest", mock.Anything, int64(1)).Return(errors.New("export failed")).Once()
	c := &Consumer{topic: "exports", handler: h}

	value, err := json.Marshal(ExportRequest{RequestID: "r-2", UserID: 1})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: value})
	})
	h.AssertExpectations(t)
}
