package codegen

// Script is the behavior stub shipped with every generated site. It does
// not depend on the element forest: it logs page load, button clicks and
// input changes.
const Script = `// Generated JavaScript
document.addEventListener('DOMContentLoaded', function () {
  console.log('Website loaded successfully');

  document.querySelectorAll('button').forEach(function (button) {
    button.addEventListener('click', function () {
      console.log('Button clicked:', this.textContent);
    });
  });

  document.querySelectorAll('input').forEach(function (input) {
    input.addEventListener('input', function () {
      console.log('Input changed:', this.value);
    });
  });
});
`
