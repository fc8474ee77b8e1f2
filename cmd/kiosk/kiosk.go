package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"izakaya/ambience"
	"izakaya/answer/domain"
	"izakaya/menu"

	"github.com/rs/zerolog"
)

type asker interface {
	Ask(ctx context.Context, question string) (domain.Result, error)
	Dish(ctx context.Context) (menu.Dish, error)
}

type kiosk struct {
	dir *ambience.Director
	api asker
	out io.Writer
	log zerolog.Logger

	// typingEvery é o intervalo do som de digitação enquanto o Ren pensa.
	typingEvery time.Duration
}

const help = `commands:
  scene <name>    go to a scene
  ask <question>  ask Ren
  dish            serve a random dish
  mute            toggle sound
  state           show audio state
  cues            list scenes and cues
  quit            leave the izakaya`

// run lê comandos até "quit", EOF ou ctx cancelado. A primeira linha, qualquer
// que seja, conta como o gesto que libera o áudio.
func (k *kiosk) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	fmt.Fprintln(k.out, "Welcome to the izakaya between worlds. Press enter to step inside.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if k.dir.Interact() {
				k.log.Debug().Msg("audio unlocked")
			}
			if k.handle(ctx, line) {
				return nil
			}
		}
	}
}

// handle executa um comando e devolve true para sair.
func (k *kiosk) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "quit", "exit":
		k.cue("click")
		if err := k.dir.EnterScene("departure"); err != nil {
			k.log.Debug().Err(err).Msg("no departure scene")
		}
		fmt.Fprintln(k.out, "Ren nods without looking up.")
		return true
	case "help", "?":
		fmt.Fprintln(k.out, help)
	case "scene":
		k.cue("click")
		if err := k.dir.EnterScene(arg); err != nil {
			if errors.Is(err, ambience.ErrUnknownScene) {
				fmt.Fprintf(k.out, "no such place: %q\n", arg)
				return false
			}
			k.log.Warn().Err(err).Msg("enter scene failed")
		}
	case "mute":
		k.cue("click")
		if k.dir.Toggle() {
			fmt.Fprintln(k.out, "sound on")
		} else {
			fmt.Fprintln(k.out, "sound off")
		}
	case "ask":
		k.ask(ctx, arg)
	case "dish":
		k.dish(ctx)
	case "state":
		b, _ := json.MarshalIndent(k.dir.State(), "", "  ")
		fmt.Fprintln(k.out, string(b))
	case "cues":
		c := k.dir.Catalog()
		fmt.Fprintf(k.out, "scenes: %s\ncues: %s\n", strings.Join(c.SceneNames(), ", "), strings.Join(c.CueNames(), ", "))
	default:
		k.cue("hover")
		fmt.Fprintf(k.out, "unknown command %q (try help)\n", cmd)
	}
	return false
}

func (k *kiosk) ask(ctx context.Context, question string) {
	k.cue("click")
	_ = k.dir.EnterScene("cooking")

	done := make(chan struct{})
	go k.typing(done)
	res, err := k.api.Ask(ctx, question)
	close(done)

	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Message != "" {
			fmt.Fprintln(k.out, ae.Message)
		} else {
			k.log.Warn().Err(err).Msg("ask failed")
			fmt.Fprintln(k.out, "The door sticks. Try again.")
		}
		return
	}

	_ = k.dir.EnterScene("result")
	fmt.Fprintf(k.out, "Ren: %s\n", res.Answer)
	k.log.Debug().Str("source", string(res.Source)).Msg("answer received")
	k.dish(ctx)
}

func (k *kiosk) dish(ctx context.Context) {
	d, err := k.api.Dish(ctx)
	if err != nil {
		k.log.Warn().Err(err).Msg("dish failed")
		return
	}
	fmt.Fprintf(k.out, "Served: %s (%s)\n  %s\n  taste %d · temperature %d · rarity %d\n",
		d.Name, d.Origin, d.Description, d.Attributes.Taste, d.Attributes.Temperature, d.Attributes.Rarity)
}

func (k *kiosk) typing(done <-chan struct{}) {
	every := k.typingEvery
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			k.cue("typing")
		}
	}
}

func (k *kiosk) cue(name string) {
	if err := k.dir.Cue(name); err != nil {
		k.log.Debug().Err(err).Msg("cue failed")
	}
}
