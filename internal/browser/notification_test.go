package browser_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
)

func TestAwaitNotificationFindsNewPopup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opened := f.extension.OpenAfter(50*time.Millisecond, popupURL, nil)

	h, err := f.session.AwaitNotification(ctx, time.Second)
	require.NoError(t, err)

	popup := <-opened
	assert.Same(t, popup, h.Window())
	assert.Equal(t, browser.WindowNotification, f.session.Switcher().Active())
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Saved())
	assert.True(t, f.session.Notifications().Known(popup.ID()))

	got, err := f.session.Registry().Resolve(browser.WindowNotification)
	require.NoError(t, err)
	assert.Same(t, h, got)
}

func TestAwaitNotificationTimeout(t *testing.T) {
	f := newFixture(t)

	start := time.Now()
	_, err := f.session.AwaitNotification(context.Background(), 80*time.Millisecond)
	require.ErrorIs(t, err, browser.ErrTimedOut)
	require.ErrorIs(t, err, browser.ErrUnexpectedState)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
}

func TestAwaitNotificationNeverRepeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.extension.Open(popupURL)

	_, err := f.session.AwaitNotification(ctx, 100*time.Millisecond)
	require.NoError(t, err)

	_, err = f.session.AwaitNotification(ctx, 50*time.Millisecond)
	require.ErrorIs(t, err, browser.ErrTimedOut)
}

func TestAwaitNotificationIgnoresOtherOrigins(t *testing.T) {
	f := newFixture(t)
	f.extension.Open("https://example.org/")

	_, err := f.session.AwaitNotification(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, browser.ErrTimedOut)

	f.extension.Open(popupURL)
	_, err = f.session.AwaitNotification(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
}

func TestCurrentNotificationReusesOpenPopup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.extension.Open(popupURL)

	first, err := f.session.Notifications().Current(ctx, 100*time.Millisecond)
	require.NoError(t, err)

	second, err := f.session.Notifications().Current(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestSecondPopupReplacesClosedOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.extension.Open(popupURL)

	_, err := f.session.AwaitNotification(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	first.CloseNow()

	second := f.extension.Open(popupURL)
	h, err := f.session.AwaitNotification(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Same(t, second, h.Window())
	assert.Equal(t, 1, second.Fronted())
	assert.Equal(t, browser.WindowNotification, f.session.Switcher().Active())
}

func TestAcquireNotificationGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.extension.Open(popupURL)

	g, err := f.session.AcquireNotification(ctx)
	require.NoError(t, err)
	assert.Equal(t, browser.WindowNotification, f.session.Switcher().Active())

	require.NoError(t, g.Release(ctx))
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
}
