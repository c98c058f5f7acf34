// File: cmd/evdemo/main.go
// Author: momentics <momentics@gmail.com>
//
// Demonstrates the async event-delivery core end to end: create a hub,
// submit a handful of operations across several kinds, and drain them
// with wait_for_events — first polled, then blocking with a concurrent
// submitter on another goroutine.

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/facade"
)

func main() {
	k, err := facade.New(facade.DefaultConfig())
	if err != nil {
		log.Fatalf("facade.New: %v", err)
	}
	if err := k.Start(); err != nil {
		log.Fatalf("Start: %v", err)
	}
	defer k.Stop()

	hub, serr := k.CreateEventHub()
	if serr != nil {
		log.Fatalf("CreateEventHub: %v", serr)
	}
	fmt.Printf("created hub %d\n", hub)

	if _, serr := k.SubmitObserve(hub, api.SubmitInfo{Lo: 0xA}, nil); serr != nil {
		log.Fatalf("SubmitObserve: %v", serr)
	}

	out := make([]api.EventRecord, 4)
	time.Sleep(10 * time.Millisecond) // let the worker pool complete the submission
	n, serr := k.WaitForEvents(hub, out, 4, 0)
	if serr != nil {
		log.Fatalf("WaitForEvents: %v", serr)
	}
	for i := 0; i < n; i++ {
		fmt.Printf("polled event: kind=%s error=%s submit_info.lo=%x\n",
			out[i].Kind, out[i].Error, out[i].SubmitInfo.Lo)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		if _, serr := k.SubmitMemoryLoad(hub, api.SubmitInfo{Lo: 0xB}, 0x1000, 0x400, nil); serr != nil {
			log.Printf("SubmitMemoryLoad: %v", serr)
		}
	}()

	n, serr = k.WaitForEvents(hub, out, 1, int64(time.Second))
	if serr != nil {
		log.Fatalf("WaitForEvents (blocking): %v", serr)
	}
	for i := 0; i < n; i++ {
		fmt.Printf("blocking-drained event: kind=%s offset=%#x length=%#x submit_info.lo=%x\n",
			out[i].Kind, out[i].Offset, out[i].Length, out[i].SubmitInfo.Lo)
	}

	released, serr := k.CloseEventHub(hub)
	if serr != nil {
		log.Fatalf("CloseEventHub: %v", serr)
	}
	fmt.Printf("closed hub, released %d queued operations\n", released)
}
