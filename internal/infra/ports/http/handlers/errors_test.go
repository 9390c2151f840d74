package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomRelay/internal/domain"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrRoomNotFound, http.StatusNotFound},
		{domain.ErrUserNotInRoom, http.StatusNotFound},
		{domain.ErrRoomFull, http.StatusConflict},
		{domain.ErrRoomClosed, http.StatusConflict},
		{fmt.Errorf("%w: %q", domain.ErrInvalidRole, "admin"), http.StatusBadRequest},
		{fmt.Errorf("delete room abc: %w", domain.ErrEvictionFailed), http.StatusInternalServerError},
		{domain.ErrIDSpaceExhausted, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			status, msg := statusOf(tc.err)

			require.Equal(t, tc.status, status)
			require.NotEmpty(t, msg)
		})
	}
}
