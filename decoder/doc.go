// SPDX-License-Identifier: EPL-2.0

// Package decoder adapts a registered codec to a push stream of events.
//
// An Adapter opens one file, probes its first audio track and, once started,
// emits a FormatChanged event followed by PCM chunks and exactly one terminal
// event:
//
//	a := decoder.New(path, registry)
//	defer a.Close()
//
//	if _, err := a.Open(); err != nil {
//		return err
//	}
//	events, err := a.Start(ctx)
//	if err != nil {
//		return err
//	}
//	for ev := range events {
//		switch ev.Kind {
//		case decoder.EventPCM:
//			consume(ev.PCM)
//		case decoder.EventError:
//			return ev.Err
//		}
//	}
//
// Compressed input reaches the codec through a reader that caps every read,
// so a large file is never pulled in one piece.
package decoder
