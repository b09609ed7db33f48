package capture

import "errors"

// ErrSessionBusy is returned by StartRecording while a recording is
// already in progress.
var ErrSessionBusy = errors.New("recording already in progress")
