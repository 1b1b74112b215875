package padding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ivanpozdin/patchsim/geometry"
	"github.com/ivanpozdin/patchsim/person"
)

func testArea() geometry.Rectangle {
	return geometry.NewRectangle(geometry.XY{X: 0, Y: 0}, geometry.XY{X: 4, Y: 4})
}

func TestChannel_WriteThenRead(t *testing.T) {
	c := New(testArea())
	ctx := context.Background()

	snap := Detach([]person.Person{person.NewSIRPerson(1, geometry.XY{X: 1, Y: 1})})
	require.NoError(t, c.Write(ctx, snap))

	got, err := c.Read(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].ID())
}

func TestChannel_ReadBlocksUntilWrite(t *testing.T) {
	c := New(testArea())
	ctx := context.Background()
	done := make(chan Snapshot, 1)

	go func() {
		s, err := c.Read(ctx)
		require.NoError(t, err)
		done <- s
	}()

	select {
	case <-done:
		t.Fatal("read completed before any write")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, c.Write(ctx, Detach(nil)))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read never completed after write")
	}
}

func TestChannel_WriteBlocksWhilePending(t *testing.T) {
	c := New(testArea())
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, Detach(nil)))

	secondDone := make(chan struct{})
	go func() {
		require.NoError(t, c.Write(ctx, Detach(nil)))
		close(secondDone)
	}()

	select {
	case <-secondDone:
		t.Fatal("second write completed while slot was still occupied")
	case <-time.After(20 * time.Millisecond):
	}

	_, err := c.Read(ctx)
	require.NoError(t, err)
	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("second write never unblocked after slot drained")
	}
}

func TestChannel_ReadCancellation(t *testing.T) {
	c := New(testArea())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Read(ctx)
	require.Error(t, err)
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
}

func TestChannel_WriteCancellation(t *testing.T) {
	c := New(testArea())
	require.NoError(t, c.Write(context.Background(), Detach(nil))) // fill the slot, so the next write must block

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Write(cancelCtx, Detach(nil))
	require.Error(t, err)
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	require.Equal(t, "write", cancelled.Op)
}

func TestSnapshot_DetachAttachRoundTrip(t *testing.T) {
	src := person.NewSIRPerson(7, geometry.XY{X: 2, Y: 2})
	src.Infect()

	snap := Detach([]person.Person{src})
	ctx := person.Context{Grid: geometry.NewRectangle(geometry.XY{}, geometry.XY{X: 10, Y: 10})}
	attached := snap.Attach(ctx)

	require.Len(t, attached, 1)
	require.Equal(t, 7, attached[0].ID())
	require.True(t, attached[0].IsInfected())
}
